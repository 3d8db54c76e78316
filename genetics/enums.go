package genetics

import "fmt"

// UnmarshalYAML accepts the config surface's named fitness values.
func (m *FitnessMode) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}
	switch name {
	case "Min", "min":
		*m = Min
	case "Max", "max":
		*m = Max
	case "Average", "average":
		*m = Average
	default:
		return fmt.Errorf("genetics: unrecognized fitness mode %q", name)
	}
	return nil
}

// UnmarshalYAML accepts the config surface's named marriage values.
func (m *MarriageMode) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}
	switch name {
	case "KingHenry", "kingHenry":
		*m = KingHenry
	case "Random", "random":
		*m = Random
	case "RandomPreferable", "randomPreferable":
		*m = RandomPreferable
	case "Hierarchical", "hierarchical":
		*m = Hierarchical
	case "BestWorst", "bestWorst":
		*m = BestWorst
	default:
		return fmt.Errorf("genetics: unrecognized marriage mode %q", name)
	}
	return nil
}

// UnmarshalYAML accepts the config surface's named reproduction values.
func (m *ReproductionMode) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}
	switch name {
	case "DiscreteMixing", "discreteMixing":
		*m = DiscreteMixing
	case "LinearCombination", "linearCombination":
		*m = LinearCombination
	case "RandomType", "randomType":
		*m = RandomType
	default:
		return fmt.Errorf("genetics: unrecognized reproduction mode %q", name)
	}
	return nil
}

// UnmarshalYAML accepts the config surface's named shrink-mode values.
func (m *ShrinkMode) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}
	switch name {
	case "ShrinkAround", "shrinkAround":
		*m = ShrinkAround
	case "ChangeLowerIfNeg", "changeLowerIfNeg":
		*m = ChangeLowerIfNeg
	default:
		return fmt.Errorf("genetics: unrecognized shrink mode %q", name)
	}
	return nil
}
