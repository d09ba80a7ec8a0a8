package relay

import (
	syslog "github.com/RackSec/srslog"
)

// SyslogSink writes log lines to a syslog daemon in addition to the package
// logger. cmd/dnsrelay attaches it through a logrus hook that forwards every
// log entry, including the per-request line (spec.md §6). Write and Close on
// a nil *SyslogSink do nothing.
type SyslogSink struct {
	writer *syslog.Writer
}

// SyslogOptions configures a SyslogSink.
type SyslogOptions struct {
	// "udp", "tcp", or "unix". Defaults to "udp".
	Network string

	// Remote syslog address, e.g. "127.0.0.1:514". Required.
	Address string

	// Tag identifies this process in syslog records.
	Tag string
}

// NewSyslogSink dials the configured syslog endpoint. Errors are returned to
// the caller rather than swallowed, since an operator who asked for syslog
// output should know if it didn't connect.
func NewSyslogSink(opt SyslogOptions) (*SyslogSink, error) {
	network := opt.Network
	if network == "" {
		network = "udp"
	}
	writer, err := syslog.Dial(network, opt.Address, syslog.LOG_INFO|syslog.LOG_DAEMON, opt.Tag)
	if err != nil {
		return nil, err
	}
	return &SyslogSink{writer: writer}, nil
}

// Write sends a single pre-formatted log line to syslog. Failures are
// reported through the package logger rather than propagated, matching the
// "client send failure: log and swallow" policy spec.md §7 applies to the
// DNS send path.
func (s *SyslogSink) Write(line string) {
	if s == nil || s.writer == nil {
		return
	}
	if _, err := s.writer.Write([]byte(line)); err != nil {
		Log.WithError(err).Warn("failed to write syslog record")
	}
}

// Close releases the underlying syslog connection.
func (s *SyslogSink) Close() error {
	if s == nil || s.writer == nil {
		return nil
	}
	return s.writer.Close()
}
