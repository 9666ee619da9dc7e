package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/qstep/qsee/handler"
)

const replHelp = `statements end with ';' and may span lines
  \dt        list relations (passed to the engine)
  .tables    list relations
  .history   list calls of this profile
  .format X  switch the output format
  .help      show this help
  .quit      exit`

func (s *session) repl(ctx context.Context, in io.Reader) {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 1024), 4*1024*1024)

	interactive := false
	if f, ok := in.(*os.File); ok {
		if fi, err := f.Stat(); err == nil {
			interactive = (fi.Mode() & os.ModeCharDevice) != 0
		}
	}

	if interactive {
		fmt.Fprintln(s.out, "qsee: quickstep shell. End statements with ';', '.help' for help.")
	}

	var buf strings.Builder
	for ctx.Err() == nil {
		if interactive {
			if buf.Len() == 0 {
				fmt.Fprint(s.out, "qs> ")
			} else {
				fmt.Fprint(s.out, " .. ")
			}
		}

		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				fmt.Fprintln(os.Stderr, "read error:", err)
			}
			return
		}

		line := strings.TrimSpace(sc.Text())
		if line == "" || (buf.Len() == 0 && strings.HasPrefix(line, "--")) {
			continue
		}

		if buf.Len() == 0 && strings.HasPrefix(line, ".") {
			if s.meta(ctx, line) {
				return
			}
			continue
		}

		buf.WriteString(line)
		buf.WriteByte('\n')
		if !isComplete(buf.String()) {
			continue
		}

		query := strings.TrimSpace(buf.String())
		buf.Reset()

		if err := s.run(ctx, query); err != nil {
			printError(err)
		}
	}
}

// meta handles dot commands. It returns true when the shell should exit.
func (s *session) meta(ctx context.Context, line string) bool {
	fields := strings.Fields(line)

	switch fields[0] {
	case ".quit", ".exit":
		return true
	case ".help":
		fmt.Fprintln(s.out, replHelp)
	case ".tables":
		structure, err := s.handler.ConnectionGetStructure(ctx, s.connID)
		if err != nil {
			printError(err)
			return false
		}
		for _, st := range structure {
			fmt.Fprintf(s.out, "%s\t%s\n", st.Name, st.Type)
		}
	case ".history":
		calls, err := s.handler.ConnectionGetCalls(s.connID)
		if err != nil {
			printError(err)
			return false
		}
		for _, c := range calls {
			fmt.Fprintf(s.out, "%s  %-18s %10s  %s\n",
				c.GetTimestamp().Format("2006-01-02 15:04:05"),
				c.GetState(),
				c.GetTimeTaken().Round(time.Microsecond),
				strings.Join(strings.Fields(c.GetQuery()), " "))
		}
	case ".format":
		if len(fields) < 2 {
			fmt.Fprintln(s.out, s.format)
			return false
		}
		if _, err := handler.NewFormatter(fields[1]); err != nil {
			printError(err)
			return false
		}
		s.format = fields[1]
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q, try .help\n", fields[0])
	}

	return false
}
