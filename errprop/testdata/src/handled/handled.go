package main

func double(n int) int { return n * 2 }

func main() {
	total := 0
	for i := 0; i < 3; i++ {
		total += double(i)
	}
	println(total)
}
