package audit

import (
	"crypto/sha256"
	"encoding/hex"
)

// DomainDataset prefixes dataset digests. The version suffix leaves room for
// a different algorithm later.
const DomainDataset = "geoqa/dataset/v1"

// hashWithDomain computes SHA-256 with domain separation:
// SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// DatasetDigest identifies the exact input text a session ran against, so
// two sessions over the same file can be told apart from sessions over an
// edited copy.
func DatasetDigest(text []byte) string {
	return hashWithDomain(DomainDataset, text)
}
