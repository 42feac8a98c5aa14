package domain

// PlatformFeeBasisPoints is the marketplace commission, 1% of the settled
// amount.
const PlatformFeeBasisPoints = 100

// PlatformFee returns the commission for a settlement amount in minor
// currency units, rounded half up. A 5000 pence settlement yields a 50 pence
// fee; amounts below 50 pence round to zero.
func PlatformFee(amount int64) int64 {
	return (amount*PlatformFeeBasisPoints + 5000) / 10000
}
