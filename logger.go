package relay

import (
	"github.com/sirupsen/logrus"
)

// Log is the package-level logger used throughout relay. It defaults to a
// text-formatted logrus logger at Info level; callers embedding the package
// can replace it wholesale or adjust its level/output before starting a
// Server.
var Log = newDefaultLogger()

func newDefaultLogger() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// requestFields builds the structured fields shared by every per-request log
// line: client address, query type, and dotted question name.
func requestFields(clientIP, qtype, qname string) logrus.Fields {
	return logrus.Fields{
		"client": clientIP,
		"qtype":  qtype,
		"qname":  qname,
	}
}

// logServed emits the one-line-per-request record spec.md §6 calls for:
// "<client_ip>, <qtype_name>, <qname_dotted>, <source>".
func logServed(clientIP, qtype, qname, source string) {
	Log.WithFields(requestFields(clientIP, qtype, qname)).
		WithField("source", source).
		Infof("%s, %s, %s, %s", clientIP, qtype, qname, source)
}
