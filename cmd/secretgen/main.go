// Command secretgen prints a random hex string suitable for
// GOPHAUTH_SECRET_KEY.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

func main() {
	size := flag.Int("bytes", 32, "number of random bytes")
	flag.Parse()

	if *size < 16 {
		log.Fatalf("refusing to generate a secret shorter than 16 bytes")
	}

	s, err := common.MakeRandHexString(*size)
	if err != nil {
		log.Fatalf("%v", err)
	}
	fmt.Println(s)
}
