/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package core implements a declarative JSON-state transformation
// engine.
//
// A Plan describes conditional, variable-driven mutations of a state
// document in response to an incoming event.  Transform compiles and
// validates the Plan, selects an action (walking the branches in order,
// the first branch whose "if" matches yields its "then", and a
// non-matching branch that has an "else" yields that "else"),
// evaluates the action's variables and preconditions, prepares its
// operations against the working context, and applies them
// transactionally.
//
// The engine is single-threaded and stateless across calls; the only
// thing that outlives a single Transform is the compiled meta-schema
// cached by the Validator.
package core
