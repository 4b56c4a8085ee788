package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	assert.Equal(t, []string{"foo", "bar"}, DedupeAndTrim([]string{"  foo ", "bar", "foo", "", "  "}))
	assert.Empty(t, DedupeAndTrim(nil))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"facial_images", "facial_features"}, SplitList("facial_images, facial_features,facial_images"))
	assert.Nil(t, SplitList("   "))
	assert.Equal(t, []string{"a"}, SplitList("a,,"))
}
