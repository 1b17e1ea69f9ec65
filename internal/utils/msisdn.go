package utils

import "strings"

// Mobile money networks
const (
	ProviderMTN        = "MTN"
	ProviderVodafone   = "Vodafone"
	ProviderAirtelTigo = "AirtelTigo"
)

var networkPrefixes = map[string]string{
	"024": ProviderMTN,
	"025": ProviderMTN,
	"053": ProviderMTN,
	"054": ProviderMTN,
	"055": ProviderMTN,
	"059": ProviderMTN,
	"020": ProviderVodafone,
	"050": ProviderVodafone,
	"026": ProviderAirtelTigo,
	"027": ProviderAirtelTigo,
	"056": ProviderAirtelTigo,
	"057": ProviderAirtelTigo,
}

// LocalMSISDN converts 233XXXXXXXXX and +233XXXXXXXXX numbers to the 0XXXXXXXXX form
func LocalMSISDN(msisdn string) string {
	m := strings.TrimPrefix(strings.TrimSpace(msisdn), "+")
	if strings.HasPrefix(m, "233") && len(m) == 12 {
		return "0" + m[3:]
	}
	return m
}

// DetectProvider picks the mobile money network from the number prefix,
// defaulting to MTN.
func DetectProvider(msisdn string) string {
	local := LocalMSISDN(msisdn)
	if len(local) >= 3 {
		if p, ok := networkPrefixes[local[:3]]; ok {
			return p
		}
	}
	return ProviderMTN
}
