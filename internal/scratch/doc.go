/*
Package scratch provides the staging area used while a document is composed.

A Dir is acquired at the start of composition and must be released on every
exit path:

	dir, err := scratch.Acquire(root)
	if err != nil {
	    return err
	}
	defer dir.Release()

	path, err := dir.WriteImage(strip, 75)

Each WriteImage call stages one raster under a fresh, sequentially numbered
file name and only returns once the file is closed and readable, so a caller
never observes a partially written strip.

# Retry Behavior

Writes and read-back checks are retried with exponential backoff when the
filesystem reports ESTALE (stale NFS file handle); every other error fails
immediately. Once retries are exhausted the error is reported as
ErrScratchIO. Defaults:
  - MaxRetries: 3 attempts
  - InitialBackoff: 50ms
  - MaxBackoff: 500ms

An Observer can be installed with SetObserver to record retry metrics.
*/
package scratch
