package main

import "github.com/ramisettybhargavi/devsecops-backend/internal/runtime"

func main() {
	runtime.New().Run()
}
