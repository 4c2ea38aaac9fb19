/*
Package ports defines the driven ports (interfaces) around the conversion engine.

These interfaces decouple processing stages from the transport that moves
records between them, so the same stage can read from memory in tests and from
Redis in production.

# Key Interfaces

  - RecordQueue: FIFO of Writable records shared by processing stages.
  - StageLocker: mutual exclusion between stages draining the same queue.
*/
package ports
