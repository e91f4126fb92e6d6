// Package script implements a line-oriented runner of store operations, used
// by the command-line client to exercise an engine.
//
// A script holds one operation per line: begin, commit, rollback,
// put <key> <value>, del <key> or get <key>. Blank lines and lines starting
// with # are skipped. The result of every get is written to the output.
package script

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"go.dedis.ch/tkv/db"
	"golang.org/x/xerrors"
)

// Run executes the script against the session and writes the read results to
// the output. It stops at the first failing operation.
func Run(session *db.Session, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)

	for line := 1; scanner.Scan(); line++ {
		err := run(session, scanner.Text(), w)
		if err != nil {
			return xerrors.Errorf("line %d: %v", line, err)
		}
	}

	err := scanner.Err()
	if err != nil {
		return xerrors.Errorf("couldn't read script: %v", err)
	}

	return nil
}

func run(session *db.Session, line string, w io.Writer) error {
	fields := strings.Fields(line)

	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}

	op := fields[0]
	args := fields[1:]

	switch op {
	case "begin":
		if len(args) != 0 {
			return xerrors.Errorf("begin takes no argument")
		}

		session.Begin()

		return nil
	case "commit":
		if len(args) != 0 {
			return xerrors.Errorf("commit takes no argument")
		}

		return session.Commit()
	case "rollback":
		if len(args) != 0 {
			return xerrors.Errorf("rollback takes no argument")
		}

		return session.Rollback()
	case "put":
		if len(args) != 2 {
			return xerrors.Errorf("put takes a key and a value")
		}

		return session.Put([]byte(args[0]), []byte(args[1]))
	case "del":
		if len(args) != 1 {
			return xerrors.Errorf("del takes a key")
		}

		return session.Delete([]byte(args[0]))
	case "get":
		if len(args) != 1 {
			return xerrors.Errorf("get takes a key")
		}

		value, found := session.Get([]byte(args[0]))
		if found {
			fmt.Fprintf(w, "%s = %s\n", args[0], value)
		} else {
			fmt.Fprintf(w, "%s not found\n", args[0])
		}

		return nil
	default:
		return xerrors.Errorf("unknown operation %q", op)
	}
}
