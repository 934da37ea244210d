// Package manifest records the provenance of a simulation run as a CycloneDX
// BOM: the tool version, the hashed input tables and every parameter needed
// to reproduce the run.
package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/google/uuid"

	"github.com/idlab-discover/mchsim-cli/internal/config"
)

const (
	ToolVendor = "idlab-discover"
	ToolName   = "mchsim"

	propertyPrefix = "mchsim:"
)

// Run describes what a manifest documents.
type Run struct {
	ID        string
	Config    config.Config
	Scenarios []string
	Inputs    []string // demographic CSV paths
	Records   int
	Time      time.Time
}

// Build assembles the manifest. Input files are read to hash them.
func Build(run Run) (*cdx.BOM, error) {
	bom := cdx.NewBOM()
	bom.SerialNumber = "urn:uuid:" + uuid.New().String()

	ts := run.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	runRef := "run:" + run.ID
	if run.ID == "" {
		runRef = "run:" + uuid.New().String()
	}

	bom.Metadata = &cdx.Metadata{
		Timestamp: ts.Format(time.RFC3339),
		Tools: &cdx.ToolsChoice{Components: &[]cdx.Component{{
			Type:      cdx.ComponentTypeApplication,
			Publisher: ToolVendor,
			Name:      ToolName,
			Version:   GetVersion(),
		}}},
		Component: &cdx.Component{
			BOMRef:      runRef,
			Type:        cdx.ComponentTypeData,
			Name:        "mchsim-run",
			Version:     run.ID,
			Description: "Agent-based maternal and child health simulation run",
			Properties:  &[]cdx.Property{},
		},
	}

	props := bom.Metadata.Component.Properties
	add := func(name, value string) { *props = append(*props, cdx.Property{Name: propertyPrefix + name, Value: value}) }
	add("run_id", run.ID)
	add("seed", strconv.FormatUint(run.Config.Simulation.Seed, 10))
	add("weeks", strconv.Itoa(run.Config.Simulation.Weeks))
	add("coverage", strconv.FormatFloat(run.Config.Interventions.Coverage, 'g', -1, 64))
	add("reseed_per_scenario", strconv.FormatBool(run.Config.Simulation.ReseedPerScenario))
	add("records", strconv.Itoa(run.Records))
	for _, sc := range run.Scenarios {
		add("scenario", sc)
	}
	for _, p := range run.Config.Properties() {
		add("config:"+p.Key, p.Value)
	}

	var (
		comps []cdx.Component
		refs  []string
	)
	for _, path := range run.Inputs {
		sum, err := hashFile(path)
		if err != nil {
			return nil, err
		}
		ref := "input:" + filepath.Base(path)
		comps = append(comps, cdx.Component{
			BOMRef: ref,
			Type:   cdx.ComponentTypeData,
			Name:   filepath.Base(path),
			Hashes: &[]cdx.Hash{{Algorithm: cdx.HashAlgoSHA256, Value: sum}},
			Properties: &[]cdx.Property{
				{Name: propertyPrefix + "role", Value: "demographics"},
			},
		})
		refs = append(refs, ref)
	}
	if len(comps) > 0 {
		bom.Components = &comps
		bom.Dependencies = &[]cdx.Dependency{{Ref: runRef, Dependencies: &refs}}
	}
	return bom, nil
}

// Mismatch is an input whose content no longer matches the manifest.
type Mismatch struct {
	Name     string
	Expected string
	Actual   string // empty when the file is missing from paths
}

func (m Mismatch) String() string {
	if m.Actual == "" {
		return fmt.Sprintf("%s: not provided", m.Name)
	}
	return fmt.Sprintf("%s: sha256 %s, manifest records %s", m.Name, m.Actual, m.Expected)
}

// Verify re-hashes paths and compares them, by file name, with the inputs a
// manifest recorded.
func Verify(bom *cdx.BOM, paths []string) ([]Mismatch, error) {
	byName := make(map[string]string, len(paths))
	for _, p := range paths {
		byName[filepath.Base(p)] = p
	}
	var out []Mismatch
	if bom == nil || bom.Components == nil {
		return out, nil
	}
	for _, c := range *bom.Components {
		if c.Type != cdx.ComponentTypeData || c.Hashes == nil {
			continue
		}
		var want string
		for _, h := range *c.Hashes {
			if h.Algorithm == cdx.HashAlgoSHA256 {
				want = h.Value
			}
		}
		if want == "" {
			continue
		}
		path, ok := byName[c.Name]
		if !ok {
			out = append(out, Mismatch{Name: c.Name, Expected: want})
			continue
		}
		got, err := hashFile(path)
		if err != nil {
			return nil, err
		}
		if got != want {
			out = append(out, Mismatch{Name: c.Name, Expected: want, Actual: got})
		}
	}
	return out, nil
}

// Property returns the first value of a mchsim:<name> property on the run
// component.
func Property(bom *cdx.BOM, name string) (string, bool) {
	if bom == nil || bom.Metadata == nil || bom.Metadata.Component == nil || bom.Metadata.Component.Properties == nil {
		return "", false
	}
	for _, p := range *bom.Metadata.Component.Properties {
		if p.Name == propertyPrefix+name {
			return p.Value, true
		}
	}
	return "", false
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("hash input: %w", err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash input %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
