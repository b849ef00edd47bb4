package httpapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathID(t *testing.T) {
	id, ok := pathID("/job/42", "/job/")
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	_, ok = pathID("/job/", "/job/")
	assert.False(t, ok)

	_, ok = pathID("/job/42/extra", "/job/")
	assert.False(t, ok)

	_, ok = pathID("/job/abc", "/job/")
	assert.False(t, ok)
}

func TestSafeNext(t *testing.T) {
	assert.Equal(t, "/add_job", safeNext("/add_job"))
	assert.Equal(t, "/", safeNext(""))
	assert.Equal(t, "/", safeNext("https://evil.example/phish"))
	assert.Equal(t, "/", safeNext("//evil.example"))
	assert.Equal(t, "/", safeNext("job/1"))
}

func TestFormBool(t *testing.T) {
	assert.True(t, formBool("on"))
	assert.True(t, formBool("1"))
	assert.True(t, formBool("True"))
	assert.False(t, formBool(""))
	assert.False(t, formBool("off"))
}
