package create_plan

// Package create_plan turns task records into plan records.
//
// Inputs:
//   - Task records (`*.md`) in Needs_Action/, either named explicitly or all of
//     them. A markdown file that is the raw copy of a dropped file
//     (`FILE_x.md` beside `FILE_x.md.md`) is an attachment, not a task.
//
// For each task the skill:
//   - claims it by moving the record into Done/ (numeric suffix if Done/
//     already holds the name), so a concurrent run cannot plan it twice;
//   - writes `Plan_<task-stem>.md` into Plans/, or the project root when
//     Plans/ does not exist, replacing any plan of the same name;
//   - moves the dropped file's raw copy into Done/ beside its record;
//   - appends "Created plan for <name> and moved to Done" to the activity log.
//
// A task whose plan cannot be written is moved back to Needs_Action/.
