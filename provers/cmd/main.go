package main

import (
	"os"

	prover "github.com/kysee/zk-starks/provers"
	"github.com/kysee/zk-starks/provers/types"
)

func main() {
	prover.ProverMain(types.NewConfig(os.Args...))
}
