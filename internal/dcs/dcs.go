// Package dcs holds the compiled-in Telegram datacenter address tables:
// the production DCs a client connects to by default, and the test DCs
// used when running against Telegram's test network (api_id/api_hash
// obtained with a test-mode login).
package dcs

import "fmt"

// DC identifies one datacenter endpoint a Sender can dial.
type DC struct {
	ID      int32
	IPv4    string
	IPv6    string
	Port    int
	Isolate bool // media/CDN DCs some clients route bulk transfers through
}

// Production is Telegram's production datacenter table (addresses are the
// well-known public MTProto endpoints; a real deployment should still
// prefer values returned by config.getConfig / the most recent
// help.getNearestDc response once a session exists).
var Production = []DC{
	{ID: 1, IPv4: "149.154.175.53", Port: 443},
	{ID: 2, IPv4: "149.154.167.51", Port: 443},
	{ID: 3, IPv4: "149.154.175.100", Port: 443},
	{ID: 4, IPv4: "149.154.167.91", Port: 443},
	{ID: 5, IPv4: "91.108.56.130", Port: 443},
}

// Test is the test-network datacenter table, used when Config.TestMode
// is set.
var Test = []DC{
	{ID: 1, IPv4: "149.154.175.10", Port: 443},
	{ID: 2, IPv4: "149.154.167.40", Port: 443},
	{ID: 3, IPv4: "149.154.175.117", Port: 443},
}

// Lookup returns the DC with the given id from table, or an error if no
// such DC is compiled in.
func Lookup(table []DC, id int32) (DC, error) {
	for _, dc := range table {
		if dc.ID == id {
			return dc, nil
		}
	}
	return DC{}, fmt.Errorf("dcs: unknown datacenter %d", id)
}

// Addr returns the dial address (IPv4:port, since not every network path
// has v6) for dc.
func (dc DC) Addr() string {
	return fmt.Sprintf("%s:%d", dc.IPv4, dc.Port)
}

// Default returns Test if testMode, else Production.
func Default(testMode bool) []DC {
	if testMode {
		return Test
	}
	return Production
}
