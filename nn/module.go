// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/snn/internal/serialization"
	"github.com/born-ml/snn/tensor"
)

// Header describes a saved .snn state file.
type Header = serialization.Header

// Save writes a module's state (membrane potentials) to a .snn file.
//
// Parameters:
//   - module: The module to save
//   - path: File path to write to
//   - moduleType: Type name of the module (e.g., "IFNode", "Sequential")
//   - metadata: Optional metadata (can be nil)
//
// Example:
//
//	node, _ := nn.NewIFNode(nn.DefaultIFNodeConfig(), backend)
//	node.Forward(x)
//	err := nn.Save(node, "state.snn", "IFNode", nil)
func Save[B tensor.Backend](module Module[B], path, moduleType string, metadata map[string]string) error {
	return serialization.SaveFile(path, module.StateDict(), moduleType, metadata)
}

// Load reads a .snn file into module and returns its header.
//
// Example:
//
//	node, _ := nn.NewIFNode(nn.DefaultIFNodeConfig(), backend)
//	header, err := nn.Load("state.snn", node)
func Load[B tensor.Backend](path string, module Module[B]) (Header, error) {
	header, stateDict, err := serialization.LoadFile(path)
	if err != nil {
		return Header{}, err
	}
	if err := module.LoadStateDict(stateDict); err != nil {
		return Header{}, err
	}
	return header, nil
}
