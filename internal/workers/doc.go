/*
Package workers sizes and runs bounded worker pools.

Worker counts are derived from GOMAXPROCS rather than runtime.NumCPU, so a
process confined to two CPUs by a container limit gets two workers even on a
64 core host. Go 1.19+ sets GOMAXPROCS from the cgroup limit automatically.

	n := workers.ForCPU(8) // one per CPU, at most 8

Run fans a fixed number of indexed jobs out over a pool and stops handing
out new jobs after the first failure:

	paths := make([]string, len(strips))
	err := workers.Run(ctx, len(strips), n, func(ctx context.Context, i int) error {
		p, err := dir.WriteImage(strips[i], quality)
		paths[i] = p
		return err
	})

Jobs write their results by index, which keeps output in input order no
matter which worker finishes first.
*/
package workers
