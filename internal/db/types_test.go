package db

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/talenttrek/internal/types"
)

func TestStringArray_Scan(t *testing.T) {
	tests := []struct {
		name string
		src  interface{}
		want StringArray
	}{
		{"nil", nil, StringArray{}},
		{"bytes", []byte(`["Go","SQL"]`), StringArray{"Go", "SQL"}},
		{"text", `["React"]`, StringArray{"React"}},
		{"json null", []byte(`null`), StringArray{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a StringArray
			require.NoError(t, a.Scan(tt.src))
			assert.Equal(t, tt.want, a)
		})
	}
}

func TestStringArray_ScanRejectsUnknownType(t *testing.T) {
	var a StringArray
	assert.Error(t, a.Scan(42))
	assert.Error(t, a.Scan([]byte(`{"not":"an array"}`)))
}

func TestStringArray_NilRendersEmpty(t *testing.T) {
	v, err := StringArray(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), v)

	out, err := json.Marshal(struct {
		Skills StringArray `json:"skills"`
	}{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"skills":[]}`, string(out))
}

func TestUserRecord_PublicOmitsHash(t *testing.T) {
	u := &UserRecord{
		ID:           uuid.New(),
		Name:         "Asha",
		Email:        "asha@example.com",
		PasswordHash: "$2a$10$secret",
		Role:         types.RoleJobSeeker,
		Profile: types.Profile{
			JobSeeker: &types.JobSeekerProfile{Skills: []string{"Go"}},
		},
	}

	out, err := json.Marshal(u.Public())
	require.NoError(t, err)
	assert.NotContains(t, string(out), "secret")
	assert.Contains(t, string(out), `"skills":["Go"]`)
}

func TestSchemaDeclaresTables(t *testing.T) {
	schema := Schema()
	for _, table := range []string{"users", "job_postings", "applications", "resumes"} {
		assert.True(t, strings.Contains(schema, "CREATE TABLE IF NOT EXISTS "+table), table)
	}
	assert.Contains(t, schema, "UNIQUE (job_id, user_id)")
}
