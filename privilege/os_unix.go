//go:build unix

package privilege

import (
	"os/user"
	"strconv"

	"golang.org/x/sys/unix"
)

// OS is the System backed by the running process.
type OS struct{}

func (OS) Geteuid() int { return unix.Geteuid() }

func (OS) LookupUser(name string) (int, int, error) {
	u, err := user.Lookup(name)
	if err != nil {
		return 0, 0, err
	}
	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return 0, 0, err
	}
	gid, err := strconv.Atoi(u.Gid)
	if err != nil {
		return 0, 0, err
	}
	return uid, gid, nil
}

func (OS) Setgroups(gids []int) error { return unix.Setgroups(gids) }

func (OS) Setgid(gid int) error { return unix.Setgid(gid) }

func (OS) Setuid(uid int) error { return unix.Setuid(uid) }

var _ System = OS{}
