// Command mtproto-client is a reference MTProto 2.0 client: it connects
// to a Telegram datacenter, performs the transport handshake, and keeps a
// session (auth key, pts/qts/date/seq, entity cache) up to date across
// restarts. It also exposes the schema code generator as a subcommand.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
