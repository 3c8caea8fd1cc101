package ascii

import "fmt"

// Checksum computes the two-digit integrity code for a message body. The
// body is every character of the message after the leading type tag and
// before the checksum delimiter.
//
// The code is the XOR sum of the body bytes, truncated to one byte and then
// inverted, rendered as two uppercase hex digits. The final inversion is
// mandated by the protocol and devices reject frames without it.
func Checksum(body string) string {
	var sum byte
	for i := 0; i < len(body); i++ {
		sum ^= body[i]
	}
	return fmt.Sprintf("%02X", (sum&0xFF)^0xFF)
}
