//go:build !linux

package fast

import "golang.org/x/sys/unix"

// newHugePageArena falls back to a plain page-aligned anonymous mapping on
// platforms without a transparent-huge-page advise call (spec.md: "on
// systems without huge pages, fall back to page-aligned allocation and
// accept the TLB cost").
func newHugePageArena(size int) (*hugePageArena, error) {
	if size <= 0 {
		size = 1
	}
	buf, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, err
	}
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
