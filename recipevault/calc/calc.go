// Package calc provides small arithmetic helpers.
package calc

// Add returns the sum of x and y.
func Add(x, y int) int {
	return x + y
}

// Subtract subtracts x from y.
func Subtract(x, y int) int {
	return y - x
}
