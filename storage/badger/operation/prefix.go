package operation

const (
	codePendingAction = 1
	codeWitness       = 2
)

// makePrefix composes a storage key from a code byte and a sequence of
// string segments. Segments are separated by a zero byte, which cannot
// occur in action ids or bech32 signer addresses.
func makePrefix(code byte, segments ...string) []byte {
	key := []byte{code}
	for _, segment := range segments {
		key = append(key, 0x00)
		key = append(key, []byte(segment)...)
	}
	return key
}
