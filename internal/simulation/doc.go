// Package simulation runs voting rounds and multi-round experiments.
//
// A Round sequences one election: it creates the round's generator from the
// seed, hands it and the project population to the electorate, lets the
// badgeholders communicate and vote, runs the funding design, and summarizes
// the outcome. An Experiment generates a project population and electorate
// from a Scenario and repeats rounds over consecutive seeds, resetting all
// round state in between and averaging the summaries.
//
// Usage:
//
//	exp := simulation.Experiment{Scenario: simulation.DefaultScenario(), Runs: 10}
//	result, err := exp.Run(ctx)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Mean.AvgPayout)
package simulation
