// Package definition carries the static simulator metadata the
// orchestrator consumes: supported file types, model categories, the step
// argument fields and physical unit quantities. Pure configuration, no
// logic.
package definition

type Definition struct {
	ExternalID         string         `json:"external_id" yaml:"external_id"`
	Name               string         `json:"name" yaml:"name"`
	FileExtensionTypes []string       `json:"file_extension_types" yaml:"file_extension_types"`
	ModelTypes         []ModelType    `json:"model_types" yaml:"model_types"`
	StepFields         []StepFields   `json:"step_fields" yaml:"step_fields"`
	UnitQuantities     []UnitQuantity `json:"unit_quantities" yaml:"unit_quantities"`
}

type ModelType struct {
	Name string `json:"name" yaml:"name"`
	Key  string `json:"key" yaml:"key"`
}

type StepFields struct {
	StepType string  `json:"step_type" yaml:"step_type"`
	Fields   []Field `json:"fields" yaml:"fields"`
}

type Field struct {
	Name  string `json:"name" yaml:"name"`
	Label string `json:"label" yaml:"label"`
	Info  string `json:"info" yaml:"info"`
}

type UnitQuantity struct {
	Name  string `json:"name" yaml:"name"`
	Label string `json:"label" yaml:"label"`
	Units []Unit `json:"units" yaml:"units"`
}

type Unit struct {
	Name  string `json:"name" yaml:"name"`
	Label string `json:"label" yaml:"label"`
}

// Get returns the bridge's simulator definition.
func Get() Definition {
	return Definition{
		ExternalID:         "mjbridge",
		Name:               "mjbridge physics simulator",
		FileExtensionTypes: []string{"xml", "mjcf", "urdf"},
		ModelTypes: []ModelType{
			{Name: "Robotics", Key: "Robotics"},
			{Name: "Biomechanics", Key: "Biomechanics"},
			{Name: "Soft Body", Key: "SoftBody"},
			{Name: "General Physics", Key: "GeneralPhysics"},
		},
		StepFields: []StepFields{
			{
				StepType: "get/set",
				Fields: []Field{
					{Name: "object_type", Label: "Object Type",
						Info: "Type of object (actuator, joint, body, qpos, qvel, sensor, time, energy)"},
					{Name: "object_name", Label: "Object Name",
						Info: "Name of the object in the model"},
					{Name: "property", Label: "Property",
						Info: "Property to get/set (pos, vel, quat, ctrl, qpos, qvel, sensordata)"},
					{Name: "index", Label: "Index",
						Info: "Optional index for array properties (0, 1, 2 for x, y, z)"},
				},
			},
			{
				StepType: "command",
				Fields: []Field{
					{Name: "command", Label: "Command",
						Info: "Command to execute (step, reset, forward, inverse)"},
					{Name: "steps", Label: "Number of Steps",
						Info: "Number of simulation steps to run (for 'step' command)"},
				},
			},
		},
		UnitQuantities: []UnitQuantity{
			{Name: "Length", Label: "Length", Units: []Unit{
				{Name: "m", Label: "Meters"},
				{Name: "cm", Label: "Centimeters"},
				{Name: "mm", Label: "Millimeters"},
			}},
			{Name: "Mass", Label: "Mass", Units: []Unit{
				{Name: "kg", Label: "Kilograms"},
				{Name: "g", Label: "Grams"},
			}},
			{Name: "Time", Label: "Time", Units: []Unit{
				{Name: "s", Label: "Seconds"},
				{Name: "ms", Label: "Milliseconds"},
			}},
			{Name: "Force", Label: "Force", Units: []Unit{
				{Name: "N", Label: "Newtons"},
				{Name: "kN", Label: "Kilonewtons"},
			}},
			{Name: "Torque", Label: "Torque", Units: []Unit{
				{Name: "Nm", Label: "Newton-meters"},
			}},
			{Name: "Angle", Label: "Angle", Units: []Unit{
				{Name: "rad", Label: "Radians"},
				{Name: "deg", Label: "Degrees"},
			}},
			{Name: "Velocity", Label: "Velocity", Units: []Unit{
				{Name: "m/s", Label: "Meters per second"},
				{Name: "rad/s", Label: "Radians per second"},
			}},
			{Name: "Acceleration", Label: "Acceleration", Units: []Unit{
				{Name: "m/s2", Label: "Meters per second squared"},
				{Name: "rad/s2", Label: "Radians per second squared"},
			}},
		},
	}
}
