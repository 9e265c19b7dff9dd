// Package pipeline runs the trigger matching filters and the b-tag
// correction over batches of events.
//
// A Chain evaluates filters in order and stops at the first rejection. A
// Runner splits a batch across workers, each owning a btag.Engine, and tags
// the valid jets of every event the chain accepts.
//
// Results are reproducible: record i is always handled by worker i mod n,
// worker w seeds its engine with the BTagSeed setting plus w, and records
// are processed in index order within a worker. The same batch, settings
// and worker count therefore give the same tags on every run.
//
// Basic usage:
//
//	chain, err := pipeline.NewChain(filter.NewRegistry(),
//	    filter.ElectronTriggerMatchingID, filter.JetTriggerMatchingID)
//	if err != nil {
//	    return err
//	}
//	runner, err := pipeline.NewRunner(chain, settings, pipeline.WithWorkers(4))
//	if err != nil {
//	    return err
//	}
//	summary, err := runner.Run(ctx, records)
package pipeline
