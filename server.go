package evkv

import (
	"fmt"
	"net"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// Server is the single-threaded, non-blocking, event-driven TCP
// key-value server (spec.md §2, §4.8). A Server must be constructed with
// New and run with Run; it is not safe to share across goroutines (it has
// none of its own beyond the one running Run).
type Server struct {
	cfg   *Config
	store *store

	listenFD int
	conns    map[int]*conn // connection table: fd -> owned connection
}

// New constructs a Server. It does not open any socket; call Run to bind,
// listen, and serve.
func New(opts ...Option) *Server {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &Server{
		cfg:      cfg,
		store:    newStore(),
		listenFD: -1,
		conns:    make(map[int]*conn),
	}
}

// Run binds the listening socket (TCP, IPv4, SO_REUSEADDR) and serves
// forever, running the readiness-driven event loop described in spec.md
// §4.8. There is no shutdown protocol: Run returns only on bootstrap
// failure or on an unrecoverable (non-EINTR) poll error.
func (s *Server) Run() error {
	fd, err := s.bootstrap()
	if err != nil {
		s.cfg.Logger.WithError(err).Error("evkv: bootstrap failed")
		return err
	}
	s.listenFD = fd
	defer unix.Close(s.listenFD)

	s.cfg.Logger.WithFields(logrus.Fields{"addr": s.cfg.ListenAddr}).Info("evkv: listening")
	return s.loop()
}

// bootstrap parses the listen address, opens a non-blocking IPv4 TCP
// listening socket with SO_REUSEADDR set, binds, and listens. Bootstrap
// failures (socket/bind/listen/sockopt) are fatal to the process per
// spec.md §7.
func (s *Server) bootstrap() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp4", s.cfg.ListenAddr)
	if err != nil {
		return -1, fmt.Errorf("evkv: resolve listen address %q: %w", s.cfg.ListenAddr, err)
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, fmt.Errorf("evkv: socket: %w", err)
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("evkv: setsockopt SO_REUSEADDR: %w", err)
	}

	sa := &unix.SockaddrInet4{Port: addr.Port}
	if ip4 := addr.IP.To4(); ip4 != nil {
		copy(sa.Addr[:], ip4)
	}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("evkv: bind: %w", err)
	}

	if err := unix.Listen(fd, unix.SOMAXCONN); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("evkv: listen: %w", err)
	}

	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("evkv: set listening socket non-blocking: %w", err)
	}

	return fd, nil
}

// loop is the event loop proper (spec.md §4.8): build a readiness-watch
// list from the listening socket plus every live connection's intents,
// wait on it with no timeout, accept new connections, service ready
// connections with one non-blocking read or write step each, then reap
// connections flagged for close. Strictly single-threaded: the poll wait
// is the only suspension point.
func (s *Server) loop() error {
	for {
		fds := s.buildPollSet()

		n, err := unix.Poll(fds, -1)
		if err != nil {
			if err == unix.EINTR {
				// Signal interruption restarts the iteration without error.
				continue
			}
			return fmt.Errorf("evkv: poll: %w", err)
		}
		if n == 0 {
			continue
		}

		listenEvents := fds[0].Revents
		if listenEvents&unix.POLLIN != 0 {
			s.acceptOne()
		}

		for _, pfd := range fds[1:] {
			c, ok := s.conns[int(pfd.Fd)]
			if !ok {
				continue
			}
			s.serviceConn(c, pfd.Revents)
		}

		s.reapClosed()
	}
}

// buildPollSet builds the readiness-watch list: entry 0 always watches
// the listening socket for readable; each live connection watches for
// the union of error plus (readable if wantRead) plus (writable if
// wantWrite), per spec.md §4.8 step 1.
func (s *Server) buildPollSet() []unix.PollFd {
	fds := make([]unix.PollFd, 0, 1+len(s.conns))
	fds = append(fds, unix.PollFd{Fd: int32(s.listenFD), Events: unix.POLLIN})

	for fd, c := range s.conns {
		var events int16
		if c.wantRead() {
			events |= unix.POLLIN
		}
		if c.wantWrite() {
			events |= unix.POLLOUT
		}
		fds = append(fds, unix.PollFd{Fd: int32(fd), Events: events})
	}
	return fds
}

// acceptOne accepts a single pending connection, sets it non-blocking,
// and installs it in the connection table initialized with the read
// intent, per spec.md §4.8 step 3.
func (s *Server) acceptOne() {
	connFD, sa, err := unix.Accept4(s.listenFD, unix.SOCK_NONBLOCK)
	if err != nil {
		if isWouldBlock(err) {
			return
		}
		s.cfg.Logger.WithError(err).Warn("evkv: accept failed")
		return
	}

	c := newConn(connFD, formatSockaddr(sa), s.cfg.MaxFrame, s.cfg.MaxArgs)
	s.conns[connFD] = c
	s.cfg.Logger.WithFields(logrus.Fields{"remote": c.remote, "fd": connFD}).Info("evkv: accepted connection")
}

// serviceConn dispatches one readiness event to the connection's reader
// or writer per spec.md §4.8 step 4. A readable event on a write-intent
// connection (or vice versa) would violate the invariant that intents
// and poll interest agree; it is never requested of the poller, so it is
// never observed here.
func (s *Server) serviceConn(c *conn, revents int16) {
	if revents&unix.POLLIN != 0 && c.wantRead() {
		c.onReadable(s.store, s.cfg.Logger, s.cfg.bufPool)
	}
	if revents&unix.POLLOUT != 0 && c.wantWrite() {
		c.onWritable()
	}
	if revents&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 {
		c.state = connClosing
	}
}

// reapClosed closes and removes every connection flagged for close,
// releasing its socket via the single close path (spec.md §4.4, §5).
func (s *Server) reapClosed() {
	for fd, c := range s.conns {
		if !c.closing() {
			continue
		}
		unix.Close(fd)
		delete(s.conns, fd)
		s.cfg.Logger.WithFields(logrus.Fields{"remote": c.remote, "fd": fd}).Info("evkv: connection closed")
	}
}

// formatSockaddr renders a unix.Sockaddr as "ip:port" for logging.
func formatSockaddr(sa unix.Sockaddr) string {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return fmt.Sprintf("%d.%d.%d.%d:%d", a.Addr[0], a.Addr[1], a.Addr[2], a.Addr[3], a.Port)
	case *unix.SockaddrInet6:
		return fmt.Sprintf("[%x]:%d", a.Addr, a.Port)
	default:
		return "unknown"
	}
}
