package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPairLockKeyIsSymmetric(t *testing.T) {
	a := "6f1c2d3e-0000-4000-8000-000000000001"
	b := "0a9b8c7d-0000-4000-8000-000000000002"

	assert.Equal(t, pairLockKey(a, b), pairLockKey(b, a))
	assert.Equal(t, "swipe:"+b+":"+a, pairLockKey(a, b))
	assert.NotEqual(t, pairLockKey(a, b), pairLockKey(a, "0a9b8c7d-0000-4000-8000-000000000003"))
}
