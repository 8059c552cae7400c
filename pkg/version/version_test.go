package version_test

import (
	"encoding/json"
	"strings"
	"testing"

	// Packages
	version "github.com/dragon84867/qwen-code-examples/pkg/version"
	assert "github.com/stretchr/testify/assert"
)

func Test_version_001(t *testing.T) {
	assert := assert.New(t)
	assert.NotEmpty(version.Version())
	assert.True(strings.HasPrefix(version.UserAgent(), "imagegen/"+version.Version()+" ("))
}

func Test_version_002(t *testing.T) {
	assert := assert.New(t)
	var metadata map[string]string
	assert.NoError(json.Unmarshal(version.JSON("imagegen"), &metadata))
	assert.Equal("imagegen", metadata["name"])
	assert.Equal(version.Version(), metadata["version"])
	assert.NotEmpty(metadata["compiler"])
}
