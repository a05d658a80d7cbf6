// Package privilege drops root privileges to an unprivileged user.
package privilege

import (
	"fmt"

	"github.com/jonwraymond/cmdchk/startup"
)

// System is the process credential API used by Drop.
type System interface {
	Geteuid() int
	// LookupUser resolves a user name to its uid and primary gid. It fails
	// when the user does not exist.
	LookupUser(name string) (uid, gid int, err error)
	Setgroups(gids []int) error
	Setgid(gid int) error
	Setuid(uid int) error
}

// Drop switches the process to user when it runs as root.
//
// Supplementary groups are cleared, then the gid is set, then the uid; the
// gid must change first because giving up the uid removes the permission
// to change it. Every outcome is recorded in msgs. A failure is recorded as
// CRITICAL and leaves the process as it was, and the error is also
// returned.
func Drop(sys System, user string, msgs *startup.Buffer) error {
	if sys.Geteuid() != 0 {
		msgs.Debugf("Not root, privileges unchanged.")
		return nil
	}

	uid, gid, err := sys.LookupUser(user)
	if err != nil {
		err = fmt.Errorf("%w %q: %v", ErrUnknownUser, user, err)
		msgs.Criticalf("Could not drop privileges to %s: %v", user, err)
		return err
	}

	if err := sys.Setgroups([]int{}); err != nil {
		return fail(msgs, user, "setgroups", err)
	}
	if err := sys.Setgid(gid); err != nil {
		return fail(msgs, user, "setgid", err)
	}
	if err := sys.Setuid(uid); err != nil {
		return fail(msgs, user, "setuid", err)
	}

	msgs.Debugf("Privileges dropped from root to %s.", user)
	return nil
}

func fail(msgs *startup.Buffer, user, op string, err error) error {
	err = fmt.Errorf("%w: %s: %v", ErrDropFailed, op, err)
	msgs.Criticalf("Could not drop privileges to %s: %v", user, err)
	return err
}
