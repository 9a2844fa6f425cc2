package close_plan

// Package close_plan completes plan records and files them under Archive/.
//
// A named plan is looked up in Plans/ and then the project root; without a
// name every `Plan_*.md` in both places is closed. Each plan is claimed by
// renaming it to `<stem>_completed_<YYYYMMDD_HHMMSS>.md` inside Archive/, then
// its header gets `status: completed` and a `completed` timestamp. Plans with
// no header get one holding exactly those two keys.
//
// Configuration:
//   - `only_ready` (bool): skip plans that still have an unchecked `- [ ]`
//     item. The orchestrator sets it; the close command does not.
