package behavior

import "github.com/novaengine/novasim/internal/component"

// FullThrottle sets throttle to 1.
func FullThrottle(nav component.NavigationState) component.NavigationState {
	nav.Throttle = 1
	return nav
}

// HalfThrottle sets throttle to 0.5.
func HalfThrottle(nav component.NavigationState) component.NavigationState {
	nav.Throttle = 0.5
	return nav
}

// Idle cuts the throttle.
func Idle(nav component.NavigationState) component.NavigationState {
	nav.Throttle = 0
	return nav
}

// Evade reverses thrust: the drone flies straight away from its target.
func Evade(nav component.NavigationState) component.NavigationState {
	nav.Throttle = -1
	return nav
}

// EffectResolver looks an effect up by the name used in tree files.
type EffectResolver func(name string) (Effect, bool)

var builtinEffects = map[string]Effect{
	"full_throttle": FullThrottle,
	"half_throttle": HalfThrottle,
	"idle":          Idle,
	"evade":         Evade,
}

// Builtins resolves the effects defined in this package.
func Builtins(name string) (Effect, bool) {
	e, ok := builtinEffects[name]
	return e, ok
}

// Resolvers tries each resolver in order.
func Resolvers(rs ...EffectResolver) EffectResolver {
	return func(name string) (Effect, bool) {
		for _, r := range rs {
			if r == nil {
				continue
			}
			if e, ok := r(name); ok {
				return e, true
			}
		}
		return nil, false
	}
}
