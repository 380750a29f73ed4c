package discovery

import (
	"fmt"
	"slices"
	"strings"
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeCRCTXT creates TXT records for a CRC advertisement.
func EncodeCRCTXT(info *CRCInfo) TXTRecordMap {
	txt := TXTRecordMap{
		TXTKeyFederation: info.Federation,
	}

	// Optional fields
	if info.Vendor != "" {
		txt[TXTKeyVendor] = info.Vendor
	}
	if info.Version != "" {
		txt[TXTKeyVersion] = info.Version
	}
	return txt
}

// DecodeCRCTXT parses TXT records of a CRC advertisement.
func DecodeCRCTXT(txt TXTRecordMap) (*CRCInfo, error) {
	fed, ok := txt[TXTKeyFederation]
	if !ok || fed == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyFederation)
	}
	return &CRCInfo{
		Federation: fed,
		Vendor:     txt[TXTKeyVendor],
		Version:    txt[TXTKeyVersion],
	}, nil
}

// TXTRecordsToStrings converts a TXTRecordMap to sorted "key=value" strings.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, fmt.Sprintf("%s=%s", k, v))
	}
	slices.Sort(result)
	return result
}

// StringsToTXTRecords parses a slice of "key=value" strings into a TXTRecordMap.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		key, value, found := strings.Cut(s, "=")
		if found {
			txt[key] = value
		} else if key != "" {
			// Key without value (boolean flag)
			txt[key] = ""
		}
	}
	return txt
}
