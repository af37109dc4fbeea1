package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/railzwaylabs/parkwise/internal/config"
	feedomain "github.com/railzwaylabs/parkwise/internal/fee/domain"
	vehicledomain "github.com/railzwaylabs/parkwise/internal/vehicle/domain"
	"go.uber.org/zap"
)

const ruleCostLimit = 100000

type rule struct {
	flag       feedomain.Eligibility
	expression string
	program    cel.Program
}

// Resolver grants eligibility flags by evaluating CEL expressions against a
// vehicle's attributes, exposed to the expression as `vehicle`.
type Resolver struct {
	rules []rule
	log   *zap.Logger
}

// NewResolver compiles every configured rule. A rule that does not compile
// stops the app from starting.
func NewResolver(cfg config.Config, log *zap.Logger) (*Resolver, error) {
	return NewResolverFromRules(cfg.Vehicle.EligibilityRules, log)
}

func NewResolverFromRules(rules map[string]string, log *zap.Logger) (*Resolver, error) {
	env, err := cel.NewEnv(
		cel.Variable("vehicle", cel.DynType),
		cel.CrossTypeNumericComparisons(true),
	)
	if err != nil {
		return nil, fmt.Errorf("create eligibility rule environment: %w", err)
	}

	r := &Resolver{log: log.Named("vehicle.rules")}
	for flag, expression := range rules {
		name := strings.TrimSpace(flag)
		if name == "" {
			return nil, fmt.Errorf("%w: empty flag name", vehicledomain.ErrInvalidRule)
		}

		ast, issues := env.Compile(expression)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("%w: %s: %v", vehicledomain.ErrInvalidRule, name, issues.Err())
		}
		prog, err := env.Program(ast, cel.CostLimit(ruleCostLimit))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", vehicledomain.ErrInvalidRule, name, err)
		}

		r.rules = append(r.rules, rule{
			flag:       feedomain.Eligibility(name),
			expression: expression,
			program:    prog,
		})
	}
	sort.Slice(r.rules, func(i, j int) bool { return r.rules[i].flag < r.rules[j].flag })

	return r, nil
}

// Flags lists the flags a rule can grant.
func (r *Resolver) Flags() []feedomain.Eligibility {
	out := make([]feedomain.Eligibility, 0, len(r.rules))
	for _, rl := range r.rules {
		out = append(out, rl.flag)
	}
	return out
}

// Resolve returns the explicit flags plus every flag whose rule matches the
// attributes. A rule that fails to evaluate or yields a non-bool does not match.
func (r *Resolver) Resolve(explicit []feedomain.Eligibility, attributes map[string]any) feedomain.EligibilitySet {
	set := feedomain.NewEligibilitySet(explicit...)
	if attributes == nil {
		attributes = map[string]any{}
	}

	activation := map[string]any{"vehicle": attributes}
	for _, rl := range r.rules {
		if set[rl.flag] {
			continue
		}
		out, _, err := rl.program.Eval(activation)
		if err != nil {
			r.log.Debug("eligibility rule not applicable",
				zap.String("flag", string(rl.flag)),
				zap.String("expression", rl.expression),
				zap.Error(err),
			)
			continue
		}
		if matched, ok := out.Value().(bool); ok && matched {
			set[rl.flag] = true
		}
	}
	return set
}
