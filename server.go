package relay

import (
	"context"
	"expvar"
	"net"
	"sync"
	"time"
)

// listenerReadiness is how long the listener blocks waiting for a datagram
// before it wakes up to re-check for shutdown (spec.md §4.5, §5).
const listenerReadiness = 2 * time.Second

// DefaultWorkers is the target worker-pool concurrency from spec.md §4.5
// ("target: 50 concurrent"); spec.md §9 notes it's a soft ceiling, not a
// hard cap on accepted traffic.
const DefaultWorkers = 50

type serverMetrics struct {
	cacheHits     *expvar.Int
	forwards      *expvar.Int
	forwardErrors *expvar.Int
	dropped       *expvar.Int
}

// Server is the dispatcher: a single UDP listener handing datagrams off to a
// bounded pool of workers, each of which consults the cache, forwards on
// miss or staleness, and replies to the client (spec.md §4.5).
type Server struct {
	id        string
	addr      string
	cache     *Cache
	forwarder *Forwarder
	workers   int
	metrics   serverMetrics

	mu   sync.Mutex
	conn *net.UDPConn
}

// ServerOptions configures optional Server behavior beyond its required
// collaborators.
type ServerOptions struct {
	// Workers bounds worker concurrency; DefaultWorkers is used when zero.
	Workers int
}

// NewServer returns a Server that will listen on addr (host:port, host may
// be empty for the wildcard address) once Run is called.
func NewServer(id, addr string, cache *Cache, forwarder *Forwarder, opt ServerOptions) *Server {
	workers := opt.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Server{
		id:        id,
		addr:      addr,
		cache:     cache,
		forwarder: forwarder,
		workers:   workers,
		metrics: serverMetrics{
			cacheHits:     getVarInt("server", id, "cache_hits"),
			forwards:      getVarInt("server", id, "forwards"),
			forwardErrors: getVarInt("server", id, "forward_errors"),
			dropped:       getVarInt("server", id, "dropped"),
		},
	}
}

func (s *Server) String() string { return s.id }

// Run listens until ctx is canceled, dispatching each datagram to a worker.
// Closing ctx breaks the accept loop and Run waits for in-flight workers to
// finish before returning (spec.md §9 REDESIGN FLAG #4: the source's accept
// loop has no shutdown path; this one does).
func (s *Server) Run(ctx context.Context) error {
	udpAddr, err := net.ResolveUDPAddr("udp", s.addr)
	if err != nil {
		return err
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	defer conn.Close()

	Log.WithField("addr", conn.LocalAddr().String()).Info("listener started")

	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()
	defer close(stop)

	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup
	buf := make([]byte, maxDatagram)

	for {
		if err := conn.SetReadDeadline(time.Now().Add(listenerReadiness)); err != nil {
			wg.Wait()
			return err
		}
		n, clientAddr, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				wg.Wait()
				return nil
			}
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			// Transient socket error; best-effort UDP, keep listening.
			continue
		}

		datagram := make([]byte, n)
		copy(datagram, buf[:n])

		sem <- struct{}{}
		wg.Add(1)
		go func(data []byte, addr *net.UDPAddr) {
			defer wg.Done()
			defer func() { <-sem }()
			s.handle(data, addr)
		}(datagram, clientAddr)
	}
}

// handle implements one worker's pass over a single client datagram
// (spec.md §4.5).
func (s *Server) handle(data []byte, addr *net.UDPAddr) {
	pkt, err := DecodePacket(data)
	if err != nil {
		// Malformed inbound message: dropped silently (spec.md §7.1).
		s.metrics.dropped.Add(1)
		return
	}

	key := KeyFor(pkt.Question)
	clientIP := addr.IP.String()
	qtype := typeName(pkt.Question.Type)
	qname := pkt.Question.DecodeName()

	if s.cache.Contains(key) && len(s.cache.GetObsoleteRecords(key)) == 0 {
		if records, ancount, nscount, arcount, ok := s.cache.Get(key); ok {
			resp := BuildResponse(pkt.Header, pkt.Question, records, ancount, nscount, arcount)
			s.send(addr, resp)
			logServed(clientIP, qtype, qname, "cache")
			s.metrics.cacheHits.Add(1)
			return
		}
	}

	s.forwardAndRespond(data, pkt, key, addr, clientIP, qtype, qname)
}

// forwardAndRespond covers both the cold-miss and stale-refresh paths of
// spec.md §4.5 step 2/3: forward, cache the decoded reply under key, and
// relay the (ID-restamped) upstream bytes to the client. On forwarder
// failure it sends the RCODE=2 fallback and leaves the cache untouched
// (spec.md §7.3).
func (s *Server) forwardAndRespond(reqBytes []byte, pkt Packet, key Key, addr *net.UDPAddr, clientIP, qtype, qname string) {
	respBytes, err := s.forwarder.ForwardCoalesced(key, reqBytes)
	if err != nil {
		s.send(addr, BuildErrorResponse(pkt.Header, pkt.Question))
		s.metrics.forwardErrors.Add(1)
		return
	}
	respBytes = RewriteID(respBytes, pkt.Header.ID)

	if respPacket, err := DecodePacket(respBytes); err == nil {
		s.cache.Put(key, respPacket.Records())
	}

	s.send(addr, respBytes)
	logServed(clientIP, qtype, qname, "forwarder")
	s.metrics.forwards.Add(1)
}

// send writes data back to addr, logging (not failing the worker) if the
// send itself errors (spec.md §7.4).
func (s *Server) send(addr *net.UDPAddr, data []byte) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return
	}
	if _, err := conn.WriteToUDP(data, addr); err != nil {
		Log.WithError(err).Warn("failed to send response to client")
	}
}
