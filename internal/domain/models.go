package domain

import "fmt"

// ProofOfWork defines a challenge: find a nonce that, added to Data, hashes
// with Digest to at least Difficulty leading zero bits.
type ProofOfWork struct {
	Data       []byte
	Difficulty int
	Digest     string
}

// Width is the byte width of the data block and of any valid nonce.
func (p *ProofOfWork) Width() int {
	return len(p.Data)
}

// Solution is a nonce together with the digest it produced.
type Solution struct {
	Nonce        []byte
	Digest       []byte
	LeadingZeros int
}

// Receipt is handed to a client that solved its challenge.
type Receipt struct {
	ID           string
	Digest       []byte
	LeadingZeros int
}

func (r *Receipt) String() string {
	return fmt.Sprintf("id=%s digest=%x zeros=%d", r.ID, r.Digest, r.LeadingZeros)
}
