package supervisor

import (
	"bufio"
	"net"
	"os"

	"go.trai.ch/zerr"
	"golang.org/x/sys/unix"
)

// ChildChannelFD is the descriptor number of the relay channel inside the child.
const ChildChannelFD = 3

const maxMessageSize = 1 << 20

// socketPair returns both ends of a unix stream socket. The parent end is wrapped
// as a net.Conn; the child end is meant for exec.Cmd.ExtraFiles.
func socketPair() (net.Conn, *os.File, error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, nil, zerr.Wrap(err, "failed to create relay channel")
	}
	unix.CloseOnExec(fds[0])
	unix.CloseOnExec(fds[1])

	parentFile := os.NewFile(uintptr(fds[0]), "respawn-relay")
	childFile := os.NewFile(uintptr(fds[1]), "respawn-relay-child")

	conn, err := net.FileConn(parentFile)
	_ = parentFile.Close()
	if err != nil {
		_ = childFile.Close()
		return nil, nil, zerr.Wrap(err, "failed to wrap relay channel")
	}
	return conn, childFile, nil
}

// OpenChannel wraps an inherited relay descriptor, typically RESPAWN_CHANNEL_FD.
func OpenChannel(fd int) (net.Conn, error) {
	f := os.NewFile(uintptr(fd), "respawn-channel")
	if f == nil {
		return nil, zerr.With(zerr.New("invalid channel descriptor"), "fd", fd)
	}
	defer func() { _ = f.Close() }()

	conn, err := net.FileConn(f)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to open channel"), "fd", fd)
	}
	return conn, nil
}

// readLines calls fn for every newline-delimited message on conn until it fails.
func readLines(conn net.Conn, fn func([]byte)) {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), maxMessageSize)
	for scanner.Scan() {
		fn(scanner.Bytes())
	}
}

// relayFromChild forwards the child's messages upstream until its channel closes.
// Without an upstream channel messages are dropped.
func (s *Supervisor) relayFromChild(p *process) {
	readLines(p.channel, func(line []byte) {
		s.upMu.Lock()
		defer s.upMu.Unlock()
		if s.cfg.Upstream == nil {
			return
		}
		_, _ = s.cfg.Upstream.Write(frame(line))
	})
}

// relayToChild forwards upstream messages to whichever child is current.
func (s *Supervisor) relayToChild() {
	readLines(s.cfg.Upstream, func(line []byte) {
		p := s.current.Load()
		if p == nil || p.exited() {
			return
		}
		_, _ = p.channel.Write(frame(line))
	})
}

func frame(line []byte) []byte {
	msg := make([]byte, len(line)+1)
	copy(msg, line)
	msg[len(line)] = '\n'
	return msg
}
