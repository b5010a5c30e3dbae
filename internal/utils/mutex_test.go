package utils

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExecuteWithGDALLockSerializes(t *testing.T) {
	var (
		wg      sync.WaitGroup
		inside  int
		maxSeen int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ExecuteWithGDALLock(func() {
				inside++
				maxSeen = max(maxSeen, inside)
				inside--
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
}
