/*
Package ports defines the driven ports (interfaces) for the board generation engine.

These interfaces decouple the coordination core from external implementations,
allowing it to work with various content providers, storage backends and lock
services.

# Key Interfaces

  - ContentProvider: Produces raw generated content for a scope (e.g., OpenAI or Static).
  - ConnectivityChecker: Precondition checked before any provider attempt.
  - BoardStore: Responsible for persisting and loading boards.
  - DistributedLocker: Provides distributed locking for handling concurrent board access.
*/
package ports
