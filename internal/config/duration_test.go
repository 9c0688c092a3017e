package config

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDuration_YAML(t *testing.T) {
	var d Duration
	require.NoError(t, yaml.Unmarshal([]byte(`"1h30m"`), &d))
	assert.Equal(t, 90*time.Minute, d.Duration())

	out, err := yaml.Marshal(Duration(5 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, "5s\n", string(out))
}

func TestDuration_YAMLEmpty(t *testing.T) {
	var d Duration
	require.NoError(t, yaml.Unmarshal([]byte(`""`), &d))
	assert.Equal(t, time.Duration(0), d.Duration())
}

func TestDuration_YAMLInvalid(t *testing.T) {
	var d Duration
	assert.Error(t, yaml.Unmarshal([]byte(`"soon"`), &d))
}

func TestDuration_JSON(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"300ms"`), &d))
	assert.Equal(t, 300*time.Millisecond, d.Duration())

	out, err := json.Marshal(Duration(2 * time.Minute))
	require.NoError(t, err)
	assert.Equal(t, `"2m0s"`, string(out))
}

func TestDuration_JSONNull(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`null`), &d))
	assert.Equal(t, time.Duration(0), d.Duration())
}
