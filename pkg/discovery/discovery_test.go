package discovery

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCRCTXTRoundTrip(t *testing.T) {
	info := &CRCInfo{Federation: "SEE_2026", Vendor: "Pitch", Version: "1.2"}

	strs := TXTRecordsToStrings(EncodeCRCTXT(info))
	assert.Equal(t, []string{"FN=SEE_2026", "RV=Pitch", "VER=1.2"}, strs)

	decoded, err := DecodeCRCTXT(StringsToTXTRecords(strs))
	require.NoError(t, err)
	assert.Equal(t, info, decoded)
}

func TestCRCTXTOptionalFieldsOmitted(t *testing.T) {
	txt := EncodeCRCTXT(&CRCInfo{Federation: "SEE"})
	assert.Len(t, txt, 1)
}

func TestDecodeCRCTXTMissingFederation(t *testing.T) {
	_, err := DecodeCRCTXT(TXTRecordMap{TXTKeyVendor: "Pitch"})
	assert.ErrorIs(t, err, ErrMissingRequired)

	_, err = DecodeCRCTXT(TXTRecordMap{TXTKeyFederation: ""})
	assert.ErrorIs(t, err, ErrMissingRequired)
}

func TestStringsToTXTRecords(t *testing.T) {
	txt := StringsToTXTRecords([]string{"FN=a=b", "FLAG", ""})
	assert.Equal(t, TXTRecordMap{"FN": "a=b", "FLAG": ""}, txt)
}

func TestNewCRCService(t *testing.T) {
	svc, err := newCRCService("SEE@crc", "crc.local.", 8989,
		[]string{"FN=SEE"}, []net.IP{net.ParseIP("192.168.1.10"), net.ParseIP("fe80::1")})
	require.NoError(t, err)

	assert.Equal(t, "SEE@crc", svc.InstanceName)
	assert.Equal(t, "SEE", svc.Federation)
	assert.Equal(t, []string{"192.168.1.10", "fe80::1"}, svc.Addresses)
	assert.Equal(t, "192.168.1.10:8989", svc.Address())

	_, err = newCRCService("x", "h", 8989, nil, nil)
	assert.ErrorIs(t, err, ErrMissingRequired)

	_, err = newCRCService("x", "h", 70000, []string{"FN=SEE"}, nil)
	assert.Error(t, err)
}

func TestAddressFallsBackToHost(t *testing.T) {
	svc := &CRCService{Host: "crc.local."}
	assert.Equal(t, "crc.local.:8989", svc.Address())
}

func TestMergeAndRemoveAddresses(t *testing.T) {
	addrs := mergeAddresses([]string{"10.0.0.1"}, []string{"10.0.0.1", "10.0.0.2"})
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, addrs)

	addrs = removeAddresses(addrs, []net.IP{net.ParseIP("10.0.0.1")})
	assert.Equal(t, []string{"10.0.0.2"}, addrs)

	addrs = removeAddresses(addrs, []net.IP{net.ParseIP("10.0.0.2")})
	assert.Empty(t, addrs)
}

func TestMatchFederation(t *testing.T) {
	svc := &CRCService{CRCInfo: CRCInfo{Federation: "SEE"}}
	assert.True(t, matchFederation(svc, ""))
	assert.True(t, matchFederation(svc, "SEE"))
	assert.False(t, matchFederation(svc, "other"))
}

func TestNewMDNSBrowserDefaults(t *testing.T) {
	b := NewMDNSBrowser(BrowserConfig{}, nil)
	assert.Equal(t, BrowseTimeout, b.config.BrowseTimeout)
	assert.Empty(t, b.browserOptions())
	b.Stop()
}
