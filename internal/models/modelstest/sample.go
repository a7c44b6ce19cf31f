// Package modelstest provides instance fixtures for tests.
package modelstest

import "github.com/pankaj-dahiya-devops/runson/internal/models"

// row builds an instance; ebs and nvmeGB of 0 mean unknown.
func row(name string, vcpus int, mem, price, spot float64, arch models.Arch, ebs int, nvmeGB int) models.Instance {
	inst := models.Instance{
		APIName:  name,
		VCPUs:    vcpus,
		MemoryGB: mem,
		Price:    models.Float64(price),
		Spot:     models.Float64(spot),
		Arch:     arch,
	}
	if ebs > 0 {
		inst.EBSMbps = models.Int(ebs)
	}
	if nvmeGB > 0 {
		inst.NVMe = true
		inst.NVMeGB = models.Int(nvmeGB)
	}
	return inst
}

// SampleInstances returns the 18-row sample pricing table covering the
// m7i, m7a, m7g, m7gd, c7i, r7i, r7a, r7gd, t4g, a1 and p5 families. A new
// slice is returned on every call so tests may modify it freely.
func SampleInstances() []models.Instance {
	return []models.Instance{
		row("m7i.large", 2, 8, 0.096, 0.038, models.ArchX86_64, 10000, 0),
		row("m7i.xlarge", 4, 16, 0.192, 0.077, models.ArchX86_64, 10000, 0),
		row("m7i.2xlarge", 8, 32, 0.384, 0.154, models.ArchX86_64, 10000, 0),
		row("m7a.large", 2, 8, 0.102, 0.041, models.ArchAMD64, 10000, 0),
		row("m7a.xlarge", 4, 16, 0.204, 0.082, models.ArchAMD64, 10000, 0),
		row("m7g.large", 2, 8, 0.082, 0.033, models.ArchARM64, 10000, 0),
		row("m7g.xlarge", 4, 16, 0.163, 0.065, models.ArchARM64, 10000, 0),
		row("m7gd.large", 2, 8, 0.095, 0.038, models.ArchARM64, 10000, 118),
		row("m7gd.xlarge", 4, 16, 0.190, 0.076, models.ArchARM64, 10000, 237),
		row("c7i.large", 2, 4, 0.085, 0.034, models.ArchX86_64, 10000, 0),
		row("c7i.xlarge", 4, 8, 0.170, 0.068, models.ArchX86_64, 10000, 0),
		row("r7i.large", 2, 16, 0.126, 0.050, models.ArchX86_64, 10000, 0),
		row("r7i.xlarge", 4, 32, 0.252, 0.101, models.ArchX86_64, 10000, 0),
		row("r7a.large", 2, 16, 0.134, 0.054, models.ArchAMD64, 10000, 0),
		row("r7gd.large", 2, 16, 0.145, 0.058, models.ArchARM64, 10000, 118),
		row("t4g.small", 2, 2, 0.017, 0.005, models.ArchARM64, 0, 0),
		row("a1.medium", 1, 2, 0.025, 0.008, models.ArchARM64, 0, 0),
		row("p5.48xlarge", 192, 2048, 98.32, 29.50, models.ArchX86_64, 80000, 30400),
	}
}

// Names returns the API names of instances in order.
func Names(instances []models.Instance) []string {
	names := make([]string, 0, len(instances))
	for _, inst := range instances {
		names = append(names, inst.APIName)
	}
	return names
}

// Find returns the named instance from instances. It panics when the name is
// missing so a typo in a test fails loudly.
func Find(instances []models.Instance, name string) models.Instance {
	for _, inst := range instances {
		if inst.APIName == name {
			return inst
		}
	}
	panic("modelstest: no instance named " + name)
}
