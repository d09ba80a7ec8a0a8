/*
Package relay implements a caching, recursive-forwarding DNS resolver.

It listens for DNS queries over UDP, answers from an in-memory cache when a
fresh record set is available for the question, and otherwise forwards the
original query verbatim to a configured upstream resolver, caches the reply,
and relays it back to the client.

Wire codec

Header, Question, and Record implement the narrow slice of RFC 1035 message
encoding this resolver needs: enough to key a cache by question, age TTLs,
and reconstruct a response built from cached records. It does not implement
general name decompression, EDNS(0), or DNSSEC.

Cache

Cache stores, per question Key, the ordered record set last seen from
upstream. Reads age every record's TTL down to "now" before handing back a
snapshot; Obsolete records trigger a wholesale refresh via the Forwarder
rather than a partial merge.

Server

Server ties the pieces together: a bounded pool of workers pulls datagrams
off a single UDP listener, consults the cache, and either serves a cached
answer or forwards upstream and relays the raw reply.

	fwd, _ := relay.NewForwarder("1.1.1.1:53")
	cache := relay.NewCache("main")
	srv := relay.NewServer("main", ":53", cache, fwd, relay.ServerOptions{})
	panic(srv.Run(context.Background()))
*/
package relay
