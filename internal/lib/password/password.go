package password

import "golang.org/x/crypto/bcrypt"

// Cost is the bcrypt work factor for stored password hashes.
const Cost = 10

func Hash(plain string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(plain), Cost)
}

func Verify(plain string, hash []byte) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(plain)) == nil
}
