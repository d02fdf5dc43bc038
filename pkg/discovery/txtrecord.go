package discovery

import (
	"fmt"
	"strconv"
	"strings"
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// GatewayInfo is the TXT metadata a gateway announces.
type GatewayInfo struct {
	Units   []uint8
	Profile string
	Vendor  string
	Model   string
	Serial  string
}

// EncodeGatewayTXT creates TXT records for gateway discovery.
func EncodeGatewayTXT(info *GatewayInfo) TXTRecordMap {
	txt := make(TXTRecordMap)

	// Required fields
	txt[TXTKeyUnits] = encodeUnits(info.Units)

	// Optional fields
	if info.Profile != "" {
		txt[TXTKeyProfile] = info.Profile
	}
	if info.Vendor != "" {
		txt[TXTKeyVendor] = info.Vendor
	}
	if info.Model != "" {
		txt[TXTKeyModel] = info.Model
	}
	if info.Serial != "" {
		txt[TXTKeySerial] = info.Serial
	}

	return txt
}

// DecodeGatewayTXT parses TXT records from gateway discovery.
func DecodeGatewayTXT(txt TXTRecordMap) (*GatewayInfo, error) {
	info := &GatewayInfo{}

	// Parse unit IDs (required)
	unitStr, ok := txt[TXTKeyUnits]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyUnits)
	}
	units, err := parseUnits(unitStr)
	if err != nil {
		return nil, err
	}
	if len(units) == 0 {
		return nil, fmt.Errorf("%w: empty unit list", ErrInvalidTXTRecord)
	}
	info.Units = units

	// Optional fields
	info.Profile = txt[TXTKeyProfile]
	info.Vendor = txt[TXTKeyVendor]
	info.Model = txt[TXTKeyModel]
	info.Serial = txt[TXTKeySerial]

	return info, nil
}

// encodeUnits converts unit IDs to a comma-separated string.
func encodeUnits(units []uint8) string {
	if len(units) == 0 {
		return ""
	}

	strs := make([]string, len(units))
	for i, u := range units {
		strs[i] = strconv.FormatUint(uint64(u), 10)
	}
	return strings.Join(strs, ",")
}

// parseUnits parses a comma-separated unit ID string.
func parseUnits(s string) ([]uint8, error) {
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	units := make([]uint8, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.ParseUint(p, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid unit ID %q", ErrInvalidTXTRecord, p)
		}
		units = append(units, uint8(n))
	}

	return units, nil
}

// TXTRecordsToStrings converts a TXTRecordMap to a slice of "key=value"
// strings, the format mDNS libraries expect.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, fmt.Sprintf("%s=%s", k, v))
	}
	return result
}

// StringsToTXTRecords parses a slice of "key=value" strings into a
// TXTRecordMap.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		parts := strings.SplitN(s, "=", 2)
		if len(parts) == 2 {
			txt[parts[0]] = parts[1]
		} else if len(parts) == 1 && parts[0] != "" {
			// Key without value (boolean flag)
			txt[parts[0]] = ""
		}
	}
	return txt
}
