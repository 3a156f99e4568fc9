//go:build linux

package fast

import "golang.org/x/sys/unix"

// newHugePageArena maps an anonymous region and advises the kernel to back
// it with transparent huge pages, per spec.md's "Huge-page allocation
// (FAST)" design note. madvise is best-effort: some kernels/cgroups reject
// MADV_HUGEPAGE, in which case the mapping is still usable, just backed by
// regular pages.
func newHugePageArena(size int) (*hugePageArena, error) {
	if size <= 0 {
		size = 1
	}
	buf, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, err
	}
	_ = unix.Madvise(buf, unix.MADV_HUGEPAGE)
	return &hugePageArena{buf: buf}, nil
}

func (a *hugePageArena) release() error {
	if a == nil || a.buf == nil {
		return nil
	}
	err := unix.Munmap(a.buf)
	a.buf = nil
	return err
}
