package main

import (
	"fmt"
	"go-utils/math"
)

// helper is resolved locally
func helper() int {
	return 42
}

// main mixes local and imported calls
func main() {
	result := helper()

	// Imported calls stay unresolved
	sum := math.Add(1, 2)
	product := math.Multiply(3, 4)

	fmt.Println(result, sum, product)
}

func callerFunction() int {
	a := helper()
	b := math.Add(a, 10)
	c := math.Multiply(b, 2)
	return c
}
