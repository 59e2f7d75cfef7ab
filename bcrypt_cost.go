//go:build !race

package recetario

func passwordHashCost() int {
	return 14
}
