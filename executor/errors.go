package executor

import (
	"fmt"

	"github.com/nnrtlab/execfactory/errs"
)

func optimizeErr(backend string, err error) error {
	return errs.New(errs.KindBackendOperation, "Optimize["+backend+"]", err)
}

func kernelGenErr(backend string, opSeq any, err error) error {
	return errs.New(errs.KindBackendOperation, "Generate["+backend+"]", fmt.Errorf("op-sequence %v: %w", opSeq, err))
}

func allocateErr(backend string, err error) error {
	return errs.New(errs.KindBackendOperation, "Allocate["+backend+"]", err)
}

func prepareErr(backend string, err error) error {
	return errs.New(errs.KindBackendOperation, "Prepare["+backend+"]", err)
}
