// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

// FindActivity returns the registry entry for a task type, or nil.
func (r *ActivityRegistry) FindActivity(taskType string) *Activity {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i]
		}
	}
	return nil
}

// ValidateInput checks a raw job-variable payload against the activity's
// declared input schema. Activities without a schema accept anything.
func (r *ActivityRegistry) ValidateInput(taskType string, input map[string]interface{}) error {
	activity := r.FindActivity(taskType)
	if activity == nil {
		return fmt.Errorf("unknown task type: %s", taskType)
	}
	if len(activity.InputSchema) == 0 {
		return nil
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(activity.InputSchema),
		gojsonschema.NewGoLoader(input),
	)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if !result.Valid() {
		return fmt.Errorf("input does not match schema for %s: %v", taskType, result.Errors())
	}
	return nil
}
