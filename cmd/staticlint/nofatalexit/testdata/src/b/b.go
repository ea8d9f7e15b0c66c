package b

import (
	"log"
	"os"
)

func main() {
	os.Exit(1)
}

func Quit() {
	log.Fatalln("quit")
}
