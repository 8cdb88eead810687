/*
Package postflow orchestrates a three-stage content generation pipeline:
research a topic, write platform-specific content from the research, and
illustrate the content with a generated image.

# Overview

The orchestrator is an explicit finite-state machine with a fixed linear
topology:

	Init -> Researching -> ContentGenerating -> ImageGenerating -> Done
	                |                  |
	                +------> Failed <--+

Research and content are load-bearing; a failure in either transitions
the run to Failed and nothing downstream executes. Image generation is
best-effort: the primary deliverable is the text, so an image failure is
recorded in the state's error list and the run still reaches Done. The
snapshot's Outcome() distinguishes full, degraded, and failed runs.

# Basic Usage

Build the three invokers over a capability client, construct the
pipeline, and run:

	client, err := agent.NewOpenAI(apiKey)
	if err != nil {
	    log.Fatal(err)
	}
	store, err := artifact.NewStore("./data")
	if err != nil {
	    log.Fatal(err)
	}

	pipe, err := postflow.New(
	    agent.NewResearch(client),
	    agent.NewContent(client),
	    agent.NewImage(client, client, store),
	)
	if err != nil {
	    log.Fatal(err)
	}

	snapshot, err := pipe.Run(ctx, "renewable energy",
	    postflow.PlatformTwitter, postflow.ToneCasual)
	if err != nil {
	    // snapshot still holds everything produced before the failure
	}
	fmt.Println(snapshot.Outcome(), snapshot.Content.Text)

# Progress Notification

A Notifier observes every stage transition: one started and one
succeeded-or-failed call per stage. Notification is fire-and-forget -
panics are recovered, and a slow or broken notifier cannot alter
pipeline state. NopNotifier is the default; the event package provides a
bus-backed notifier for live transports.

	pipe, err := postflow.New(research, content, image,
	    postflow.WithNotifier(event.NewNotifier(bus, runID)))

# Cancellation

Cancellation is cooperative and checked at stage boundaries. A cancelled
context yields a *CancellationError naming the stage that was about to
execute; results already produced remain on the snapshot.

# Error Handling

Invokers classify every failure as one of three kinds: invalid input
(detected before any external call), upstream failure, or schema
violation. Load-bearing failures surface as *PipelineError:

	snapshot, err := pipe.Run(ctx, topic, platform, tone)
	var perr *postflow.PipelineError
	if errors.As(err, &perr) {
	    log.Printf("failed at %s: %s", perr.Stage, perr.Kind)
	}

# Thread Safety

  - Pipeline IS safe for concurrent use (immutable after New)
  - State is NOT shared: each Run owns its own instance
  - Notifier implementations must tolerate concurrent runs

# Subpackages

  - agent: stage invokers and the OpenAI capability client
  - artifact: filesystem persistence for generated images
  - event: in-memory progress event bus for push transports
  - history: run snapshot storage (memory, SQLite)
  - config: application configuration loading
  - observability: logging, metrics, and tracing helpers
  - api: HTTP/WebSocket front end
*/
package postflow
