package score

import (
	"github.com/kailas-cloud/biogate/internal/domain"
	"github.com/kailas-cloud/biogate/internal/secrets"
)

// Partial scores per matching proximity identifier. A key fob or paired
// mobile device is worth more than an ambient Bluetooth or NFC hit.
const (
	keyFobScore    = 0.3
	mobileScore    = 0.3
	bluetoothScore = 0.2
	nfcScore       = 0.2
)

// ProximityScore sums fixed partial scores for identifiers present in
// the probe that match the stored record. Both sides hold hashed values;
// comparison is constant-time.
func ProximityScore(probe, stored domain.ProximitySet) float64 {
	var score float64
	if probe.KeyFob != "" && secrets.SecureCompare(probe.KeyFob, stored.KeyFob) {
		score += keyFobScore
	}
	if probe.MobileDevice != "" && secrets.SecureCompare(probe.MobileDevice, stored.MobileDevice) {
		score += mobileScore
	}
	if probe.BluetoothAddr != "" && secrets.SecureCompare(probe.BluetoothAddr, stored.BluetoothAddr) {
		score += bluetoothScore
	}
	if probe.NFCTag != "" && secrets.SecureCompare(probe.NFCTag, stored.NFCTag) {
		score += nfcScore
	}
	return score
}
