package telemetry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/benvon/career-coach/internal/services/ai"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// fakePlanner answers every chat completion with a three-task tool call.
func fakePlanner(t *testing.T) *httptest.Server {
	t.Helper()

	task := map[string]any{
		"title": "Read about indexes", "description": "B-trees", "task_type": "learn",
		"duration_minutes": 20, "platform_name": "MDN", "platform_url": "https://developer.mozilla.org",
		"skill_name": "SQL",
	}
	args, err := json.Marshal(map[string]any{"tasks": []any{task, task, task}})
	if err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "chatcmpl-1", "object": "chat.completion", "created": 1, "model": "test-model",
			"choices": []any{map[string]any{
				"index": 0, "finish_reason": "tool_calls",
				"message": map[string]any{
					"role": "assistant", "content": nil,
					"tool_calls": []any{map[string]any{
						"id": "call_1", "type": "function",
						"function": map[string]any{"name": "generate_daily_tasks", "arguments": string(args)},
					}},
				},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

// TestTraceContextPropagation checks that an incoming traceparent reaches
// the router span and the planner span beneath it.
func TestTraceContextPropagation(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	planner := ai.NewOpenAIProvider(ai.ProviderConfig{APIKey: "sk-test", BaseURL: fakePlanner(t).URL, Model: "test-model"})

	r := mux.NewRouter()
	r.Use(otelmux.Middleware("career-coach-api"))
	r.HandleFunc("/api/v1/tasks/generate", func(w http.ResponseWriter, r *http.Request) {
		drafts, err := planner.PlanTasks(r.Context(), ai.TaskRequest{Role: "Data Analyst", Category: "Data"})
		if err != nil {
			t.Errorf("PlanTasks() error = %v", err)
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		if len(drafts) != 3 {
			t.Errorf("Expected 3 drafts, got %d", len(drafts))
		}
		w.WriteHeader(http.StatusCreated)
	}).Methods(http.MethodPost)

	const traceID = "4bf92f3577b34da6a3ce929d0e0e4736"

	tests := []struct {
		name        string
		traceParent string
	}{
		{name: "new trace"},
		{name: "caller trace", traceParent: "00-" + traceID + "-00f067aa0ba902b7-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exporter.Reset()

			req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks/generate", nil)
			if tt.traceParent != "" {
				req.Header.Set("traceparent", tt.traceParent)
			}
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			if rr.Code != http.StatusCreated {
				t.Fatalf("Expected status 201, got %d", rr.Code)
			}
			if err := tp.ForceFlush(context.Background()); err != nil {
				t.Fatalf("Failed to flush tracer provider: %v", err)
			}

			var routeSpan, planSpan *tracetest.SpanStub
			spans := exporter.GetSpans()
			for i := range spans {
				switch spans[i].Name {
				case "ai.plan_tasks":
					planSpan = &spans[i]
				case "/api/v1/tasks/generate":
					routeSpan = &spans[i]
				}
			}
			if routeSpan == nil || planSpan == nil {
				t.Fatalf("Expected route and ai.plan_tasks spans, got %d spans", len(spans))
			}

			if planSpan.Parent.SpanID() != routeSpan.SpanContext.SpanID() {
				t.Error("Expected ai.plan_tasks to be a child of the route span")
			}
			if planSpan.SpanContext.TraceID() != routeSpan.SpanContext.TraceID() {
				t.Error("Expected one trace for the request")
			}
			if tt.traceParent != "" && routeSpan.SpanContext.TraceID().String() != traceID {
				t.Errorf("Expected caller trace %s, got %s", traceID, routeSpan.SpanContext.TraceID())
			}

			var model string
			for _, attr := range planSpan.Attributes {
				if attr.Key == "ai.model" {
					model = attr.Value.AsString()
				}
			}
			if model != "test-model" {
				t.Errorf("Expected ai.model test-model, got %q", model)
			}
		})
	}
}
