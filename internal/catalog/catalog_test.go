package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	c, err := Default()
	require.NoError(t, err)
	assert.Len(t, c.IT, 10)
	assert.Len(t, c.NonIT, 5)
	require.Len(t, c.TimeOptions, 4)
	assert.Equal(t, 30, c.TimeOptions[0].Minutes)
	assert.Equal(t, "Intensive track", c.TimeOptions[3].Description)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	c := MustDefault()

	tests := []struct {
		name         string
		category     string
		role         string
		wantCategory string
		wantRole     string
		wantErr      error
	}{
		{name: "exact", category: "Data & AI", role: "Data Analyst", wantCategory: "Data & AI", wantRole: "Data Analyst"},
		{name: "case insensitive", category: "cloud & devops", role: " devops engineer ", wantCategory: "Cloud & DevOps", wantRole: "DevOps Engineer"},
		{name: "non-IT", category: "Support", role: "Customer Support Executive", wantCategory: "Support", wantRole: "Customer Support Executive"},
		{name: "unknown category", category: "Astronomy", role: "Astronomer", wantErr: ErrUnknownCategory},
		{name: "role in wrong category", category: "Design", role: "Data Analyst", wantErr: ErrUnknownRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gotCategory, gotRole, err := c.Validate(tt.category, tt.role)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCategory, gotCategory)
			assert.Equal(t, tt.wantRole, gotRole)
		})
	}
}

func TestCategoryOf(t *testing.T) {
	t.Parallel()

	c := MustDefault()
	got, ok := c.CategoryOf("penetration tester")
	assert.True(t, ok)
	assert.Equal(t, "Security", got)

	_, ok = c.CategoryOf("Astronaut")
	assert.False(t, ok)
}

func TestParse_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{name: "not yaml", doc: "it: [unterminated"},
		{name: "empty", doc: "time_options: []"},
		{name: "duplicate category", doc: "it:\n  - name: A\n    roles: [x]\nnon_it:\n  - name: a\n    roles: [y]\n"},
		{name: "category without roles", doc: "it:\n  - name: A\n    roles: []\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}
