//go:build cgo

package main

// Registers the netlib BLAS implementation (system OpenBLAS or Accelerate)
// for the similarity matrix product when cgo is available.

import (
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/netlib/blas/netlib"
)

func init() {
	blas64.Use(netlib.Implementation{})
	log.Debug().Msg("cgo BLAS enabled (netlib)")
}
