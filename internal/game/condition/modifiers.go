package condition

// IsActionRestricted reports whether the given ability action kind is blocked
// by any present flag's RestrictActions list.
func IsActionRestricted(s *Set, action string) bool {
	for id := range s.flags {
		def, ok := s.reg.Get(id)
		if !ok {
			continue
		}
		for _, r := range def.RestrictActions {
			if r == action {
				return true
			}
		}
	}
	return false
}

// IsMovementRestricted reports whether any present flag stops locomotion.
func IsMovementRestricted(s *Set) bool {
	for id := range s.flags {
		if def, ok := s.reg.Get(id); ok && def.RestrictMovement {
			return true
		}
	}
	return false
}
