package utils

import "sync"

var gdalMu sync.Mutex

// ExecuteWithGDALLock runs fn while holding the process wide GDAL lock.
// GDAL dataset handles must not be used from two goroutines at once.
func ExecuteWithGDALLock(fn func()) {
	gdalMu.Lock()
	defer gdalMu.Unlock()
	fn()
}
