// Package catalog maps supported radio message type names to their AWW
// protocol codes.
package catalog

import "sort"

// Code is the numeric AWW protocol identifier of a message type. Codes are
// partitioned by family: 100-199 WCDMA (100-149 RRC channel messages,
// 150-199 RRC system information), 200-299 LTE.
type Code uint32

// supportedTypes is the full set of message types the external dissector
// understands. Keep consistent with ws_dissector/packet-aww.cpp; the
// dissector has no handshake to detect a mismatch, so a divergent entry
// silently corrupts the protocol.
var supportedTypes = map[string]Code{
	// WCDMA RRC: 100~149
	"RRC_UL_CCCH":     100,
	"RRC_UL_DCCH":     101,
	"RRC_DL_CCCH":     102,
	"RRC_DL_DCCH":     103,
	"RRC_DL_BCCH_BCH": 104,
	// WCDMA RRC SysInfo: 150~199
	"RRC_MIB":   150,
	"RRC_SIB1":  151,
	"RRC_SIB3":  153,
	"RRC_SIB5":  155,
	"RRC_SIB7":  157,
	"RRC_SIB12": 162,
	"RRC_SIB19": 169,
	// LTE: 200~299
	"LTE-RRC_PCCH":        200,
	"LTE-RRC_DL_DCCH":     201,
	"LTE-RRC_UL_DCCH":     202,
	"LTE-RRC_BCCH_DL_SCH": 203,
	"LTE-NAS_EPS_PLAIN":   250,
}

// Lookup resolves a message type name to its protocol code. An unknown
// name is not an error: it means the type is not supported by the
// external dissector.
func Lookup(name string) (Code, bool) {
	code, ok := supportedTypes[name]
	return code, ok
}

// Names returns the supported type names in sorted order.
func Names() []string {
	names := make([]string, 0, len(supportedTypes))
	for name := range supportedTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
